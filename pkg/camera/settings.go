package camera

// Settings identifies the peripheral to open and the resolution it
// should capture at.
type Settings struct {
	Device     string
	Dimensions Dimensions
}
