package main

import "aur-packager/cmd/aur-packager/cmd"

func main() {
	cmd.Execute()
}
