package decode

// Base provides the callback-registration plumbing common to every
// decoder implementation; embed it and call the emit* helpers from Pass.
type Base struct {
	onVideo         func(ContentVideo)
	onAudio         func(ContentAudio)
	onImageSubtitle func(ContentImageSubtitle)
	onTextSubtitle  func(ContentTextSubtitle)
}

func (b *Base) OnVideo(f func(ContentVideo))                 { b.onVideo = f }
func (b *Base) OnAudio(f func(ContentAudio))                 { b.onAudio = f }
func (b *Base) OnImageSubtitle(f func(ContentImageSubtitle)) { b.onImageSubtitle = f }
func (b *Base) OnTextSubtitle(f func(ContentTextSubtitle))   { b.onTextSubtitle = f }

func (b *Base) EmitVideo(v ContentVideo) {
	if b.onVideo != nil {
		b.onVideo(v)
	}
}

func (b *Base) EmitAudio(a ContentAudio) {
	if b.onAudio != nil {
		b.onAudio(a)
	}
}

func (b *Base) EmitImageSubtitle(s ContentImageSubtitle) {
	if b.onImageSubtitle != nil {
		b.onImageSubtitle(s)
	}
}

func (b *Base) EmitTextSubtitle(s ContentTextSubtitle) {
	if b.onTextSubtitle != nil {
		b.onTextSubtitle(s)
	}
}
