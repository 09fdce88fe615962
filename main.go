/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "cachehouse/cmd"

func main() {
	cmd.Execute()
}
