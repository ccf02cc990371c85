package main

import "stremio-service/cmd"

func main() {
	cmd.Execute()
}
