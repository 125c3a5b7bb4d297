/*
Package webphoto is the layered canvas compositing and brush-stroke engine of a raster image editor.

It keeps a stack of independently paintable pixel surfaces, turns pointer motion (and, for the
airbrush and the spray can, elapsed time alone) into stamps written into the active layer,
confines every write to the current selection and records one undo snapshot per completed gesture.

The package does not render anything by itself: a renderer pulls the flattened composite whenever
it needs a frame. Below is a minimal headless example:

	package main

	import (
		"context"
		"image/color"
		"log"
		"os"

		"github.com/esimov/webphoto"
	)

	func main() {
		panel := webphoto.NewPanel(webphoto.DefaultToolOptions())
		sess, err := webphoto.NewSession(webphoto.DefaultConfig(), panel)
		if err != nil {
			log.Fatal(err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go sess.Run(ctx)

		panel.Update(func(o *webphoto.ToolOptions) { o.Primary = color.NRGBA{R: 255, A: 255} })
		sess.Post(webphoto.PointerDown{Point: webphoto.Pt(50, 50)})
		sess.Post(webphoto.PointerUp{Point: webphoto.Pt(50, 50)})
		sess.Flush()

		f, _ := os.Create("out.png")
		defer f.Close()
		webphoto.Encode(f, sess.Frame(), ".png")
	}
*/
package webphoto
