/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/vidslice/vidslice-api/cmd"

func main() {
	cmd.Execute()
}
