package main

import "github.com/CosmoTheDev/gl2gh/cmd"

func main() {
	cmd.Execute()
}
