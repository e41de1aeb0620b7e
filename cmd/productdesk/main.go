package main

import "ProductDesk/cmd/productdesk/cmd"

func main() {
	cmd.Execute()
}
