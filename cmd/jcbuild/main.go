package main

import "github.com/goplus/jcbuild/cmd/jcbuild/internal"

func main() {
	internal.Execute()
}
