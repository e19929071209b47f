// cellsim is a functional Cell Broadband Engine emulator. The real CLI
// lives in cmd/cellsim; this root command only points there.
package main

import "fmt"

func main() {
	fmt.Println("cellsim: use 'go run ./cmd/cellsim' for the emulator CLI")
}
