package app

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/signscribe/internal/detector"
)

// handConnections are the landmark pairs drawn as the hand skeleton.
var handConnections = [][2]int{
	{detector.Wrist, detector.ThumbCMC}, {detector.ThumbCMC, detector.ThumbMCP},
	{detector.ThumbMCP, detector.ThumbIP}, {detector.ThumbIP, detector.ThumbTip},
	{detector.Wrist, detector.IndexMCP}, {detector.IndexMCP, detector.IndexPIP},
	{detector.IndexPIP, detector.IndexDIP}, {detector.IndexDIP, detector.IndexTip},
	{detector.IndexMCP, detector.MiddleMCP}, {detector.MiddleMCP, detector.MiddlePIP},
	{detector.MiddlePIP, detector.MiddleDIP}, {detector.MiddleDIP, detector.MiddleTip},
	{detector.MiddleMCP, detector.RingMCP}, {detector.RingMCP, detector.RingPIP},
	{detector.RingPIP, detector.RingDIP}, {detector.RingDIP, detector.RingTip},
	{detector.RingMCP, detector.PinkyMCP}, {detector.Wrist, detector.PinkyMCP},
	{detector.PinkyMCP, detector.PinkyPIP}, {detector.PinkyPIP, detector.PinkyDIP},
	{detector.PinkyDIP, detector.PinkyTip},
}

var (
	boneColor     = color.RGBA{0, 255, 0, 0}
	jointColor    = color.RGBA{255, 0, 0, 0}
	textColor     = color.RGBA{255, 255, 255, 0}
	progressColor = color.RGBA{0, 200, 255, 0}
)

// Preview holds the most recent annotated frame as JPEG for streaming.
type Preview struct {
	mu   sync.RWMutex
	jpeg []byte
	seq  uint64
}

func newPreview() *Preview {
	return &Preview{}
}

// Latest returns the newest JPEG and its sequence number. The sequence is
// zero until the first frame has been rendered.
func (p *Preview) Latest() ([]byte, uint64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.jpeg, p.seq
}

// Render draws the hand skeleton and recognition readout on a copy of frame
// and stores it as JPEG.
func (p *Preview) Render(frame *gocv.Mat, hand *detector.HandLandmarks, u Update) {
	if frame == nil || frame.Empty() {
		return
	}

	canvas := frame.Clone()
	defer canvas.Close()

	if hand != nil {
		drawHand(&canvas, hand)
	}
	drawReadout(&canvas, u)

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, canvas)
	if err != nil {
		return
	}
	defer buf.Close()

	data := append([]byte(nil), buf.GetBytes()...)

	p.mu.Lock()
	p.jpeg = data
	p.seq++
	p.mu.Unlock()
}

func drawHand(canvas *gocv.Mat, hand *detector.HandLandmarks) {
	w, h := float64(canvas.Cols()), float64(canvas.Rows())
	px := func(i int) image.Point {
		pt := hand.Points[i]
		return image.Pt(int(pt.X*w), int(pt.Y*h))
	}

	for _, c := range handConnections {
		gocv.Line(canvas, px(c[0]), px(c[1]), boneColor, 2)
	}
	for i := range hand.Points {
		gocv.Circle(canvas, px(i), 4, jointColor, -1)
	}
}

func drawReadout(canvas *gocv.Mat, u Update) {
	gocv.PutText(canvas, "Sign: "+u.Status.Display, image.Pt(10, 40),
		gocv.FontHersheySimplex, 1.2, textColor, 2)
	gocv.PutText(canvas, fmt.Sprintf("FPS: %.0f", u.FPS), image.Pt(10, 80),
		gocv.FontHersheySimplex, 0.7, textColor, 2)

	if u.Status.Progress > 0 {
		width := int(200 * u.Status.Progress / 100)
		gocv.Rectangle(canvas, image.Rect(10, 95, 210, 115), textColor, 1)
		gocv.Rectangle(canvas, image.Rect(10, 95, 10+width, 115), progressColor, -1)
	}
}
