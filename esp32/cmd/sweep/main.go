package main

import (
	"libdb.so/bytepulse/esp32"
	"libdb.so/bytepulse/esp32/board"
)

func main() {
	board.Run(esp32.Sweep)
}
