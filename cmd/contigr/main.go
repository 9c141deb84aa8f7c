// cmd/contigr/main.go
package main

import (
	"contigr/internal/app"
	"contigr/internal/appshell"
)

func main() { appshell.Main(app.RunContext) }
