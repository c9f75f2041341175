// Command migra manages plain SQL migrations.
package main

import "github.com/aqasim81/migra/internal/cli"

func main() {
	cli.Execute()
}
