package sport

// Sport is one playable discipline (padel, tennis, disc golf, ...).
type Sport struct {
	ID   string
	Name string
}
