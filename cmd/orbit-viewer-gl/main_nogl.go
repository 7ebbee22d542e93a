//go:build !opengl

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "orbit-viewer-gl was built without OpenGL support; rebuild with -tags opengl")
	os.Exit(1)
}
