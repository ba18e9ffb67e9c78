package main

import (
	"context"

	"issue-fetcher/cmd/issue-fetcher/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
