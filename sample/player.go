package sample

// Style selects what happens when playback reaches the end of the clip.
type Style int

const (
	Loop Style = iota
	OneShot
)

func (s Style) String() string {
	if s == OneShot {
		return "oneshot"
	}
	return "loop"
}

// Player steps through a clip one frame per call. A Loop player starts at
// frame 0 and wraps forever; a OneShot player starts finished and plays once
// after each Restart.
type Player struct {
	clip  *Clip
	style Style
	pos   int
}

func NewPlayer(clip *Clip, style Style) *Player {
	p := &Player{clip: clip, style: style}
	if style == OneShot {
		p.pos = clip.Len()
	}
	return p
}

func (p *Player) Clip() *Clip   { return p.clip }
func (p *Player) Style() Style  { return p.style }
func (p *Player) Position() int { return p.pos }

// SetStyle switches style without moving the playhead, except that a Loop
// player past the end is rewound.
func (p *Player) SetStyle(s Style) {
	p.style = s
	if s == Loop && p.pos >= p.clip.Len() {
		p.pos = 0
	}
}

// Restart rewinds to frame 0.
func (p *Player) Restart() {
	p.pos = 0
}

// Done reports whether a OneShot player has played to the end.
func (p *Player) Done() bool {
	return p.style == OneShot && p.pos >= p.clip.Len()
}

// Next returns the current frame and advances the playhead.
func (p *Player) Next() (left, right float32) {
	n := p.clip.Len()
	if n == 0 {
		return 0, 0
	}
	switch p.style {
	case Loop:
		if p.pos >= n {
			p.pos = 0
		}
		left, right = p.clip.Left[p.pos], p.clip.Right[p.pos]
		p.pos++
		if p.pos >= n {
			p.pos = 0
		}
	case OneShot:
		if p.pos >= n {
			return 0, 0
		}
		left, right = p.clip.Left[p.pos], p.clip.Right[p.pos]
		p.pos++
	}
	return left, right
}
