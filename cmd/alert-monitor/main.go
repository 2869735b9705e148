package main

import "github.com/oshokin/alert-monitor/cmd/alert-monitor/cmd"

func main() {
	cmd.Execute()
}
