package main

import "github.com/playvenue/playvenue_backend/cmd"

func main() {
	cmd.Execute()
}
