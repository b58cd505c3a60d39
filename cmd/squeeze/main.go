// Command squeeze reduces the size of raster images by re-encoding them as
// baseline JPEG.
package main

import (
	"log"
	"os"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}
}
