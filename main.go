package main

import "chatapp/server/cmd"

func main() {
	cmd.Execute()
}
