// Package main is the entry point for the open-prices command: the HTTP
// server, schema migrations and data exports.
package main

func main() {
	Execute()
}
