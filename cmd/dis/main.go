package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/guslan/vip8"
)

// dis prints every pair of bytes of a rom as an instruction, starting at the start-of-program address
func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		log.Fatalln("must provide the path to a rom as an argument")
	}

	program, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalln(err)
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	for i := 0; i+1 < len(program); i += 2 {
		opCode := uint16(program[i])<<8 | uint16(program[i+1])
		fmt.Fprintf(out, "%03X  %04X  %s\n", 0x200+i, opCode, vip8.Decode(opCode))
	}
	if len(program)%2 == 1 {
		fmt.Fprintf(out, "%03X  %02X    DB 0x%02X\n", 0x200+len(program)-1, program[len(program)-1], program[len(program)-1])
	}
}
