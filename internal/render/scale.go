package render

// ScaleFit computes the size an ow x oh image should be drawn at to fit a
// w x h box. Non-positive w or h leave that dimension unconstrained. Without
// up the box is first clamped to the original size, so the image is never
// enlarged. With aspect the original ratio is kept and the result fits inside
// the box.
func ScaleFit(w, h, ow, oh int, aspect, up bool) (int, int) {
	if ow <= 0 || oh <= 0 {
		return ow, oh
	}
	if !up && w > ow {
		w = ow
	}
	if !up && h > oh {
		h = oh
	}
	switch {
	case w > 0 && h > 0:
		if !aspect {
			return w, h
		}
		if w*oh > h*ow {
			return heightToWidth(h, ow, oh), h
		}
		return w, widthToHeight(w, ow, oh)
	case w > 0:
		if !aspect {
			return w, oh
		}
		return w, widthToHeight(w, ow, oh)
	case h > 0:
		if !aspect {
			return ow, h
		}
		return heightToWidth(h, ow, oh), h
	default:
		return ow, oh
	}
}

// widthToHeight and heightToWidth round to the nearest pixel in integer
// math, so a box equal to the original size maps back onto it exactly.
func widthToHeight(w, ow, oh int) int {
	return (w*oh + ow/2) / ow
}

func heightToWidth(h, ow, oh int) int {
	return (h*ow + oh/2) / oh
}

// TargetWidth picks the drawn width. An explicit width always wins. Otherwise
// ScaleUp stretches to the terminal width, and without it the image keeps its
// native width unless that exceeds the terminal.
func TargetWidth(native, termWidth int, opts Options) int {
	switch {
	case opts.Width > 0:
		return opts.Width
	case termWidth > 0 && opts.ScaleUp:
		return termWidth
	case termWidth > 0 && native > termWidth:
		return termWidth
	default:
		return native
	}
}
