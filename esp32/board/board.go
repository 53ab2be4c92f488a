// Package board wires a Variant to the ESP32's UART2.
package board

import (
	"machine"

	"libdb.so/bytepulse/esp32"
)

// Run configures UART2 for v and emits forever.
func Run(v esp32.Variant) {
	uart := machine.UART2
	uart.Configure(machine.UARTConfig{
		BaudRate: v.Baud,
		TX:       pin(v.TX),
		RX:       pin(v.RX),
	})

	esp32.NewEmitter(uart, v, machine.Serial).Run()
}

func pin(n int8) machine.Pin {
	if n < 0 {
		return machine.NoPin
	}
	return machine.Pin(n)
}
