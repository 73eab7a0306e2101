package main

import "soulsync-backend/cmd"

func main() {
	cmd.Run()
}
