package main

import (
	"fmt"
	"os"

	"github.com/scribeworks/blog-backend/cmd/cli/root"

	_ "github.com/scribeworks/blog-backend/cmd/cli/auth"
	_ "github.com/scribeworks/blog-backend/cmd/cli/posts"
)

func main() {
	if err := root.GetRoot().Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
