package main

import "github.com/MeKo-Tech/noisy/internal/cmd"

func main() {
	cmd.Execute()
}
