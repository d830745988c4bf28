package vibe

import "sort"

const DefaultLayoutID = "negativeSpace"

// LayoutSpec tells the image step where the caption will sit so the scene
// leaves room for it.
type LayoutSpec struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Placement string `json:"placement"`
	Guidance  string `json:"guidance"`
	MaxLines  int    `json:"maxLines"`
}

var layouts = map[string]LayoutSpec{
	"negativeSpace": {
		ID: "negativeSpace", Name: "Natural negative space", Placement: "auto",
		Guidance: "leave a calm, uncluttered area of natural negative space where a caption can sit",
		MaxLines: 3,
	},
	"memeTopBottom": {
		ID: "memeTopBottom", Name: "Meme top and bottom", Placement: "top-bottom",
		Guidance: "keep the top and bottom bands of the frame simple so bold caption text stays readable",
		MaxLines: 2,
	},
	"lowerThird": {
		ID: "lowerThird", Name: "Lower third", Placement: "bottom",
		Guidance: "keep the lower third of the frame low in detail for a caption strip",
		MaxLines: 2,
	},
	"sideBarLeft": {
		ID: "sideBarLeft", Name: "Left sidebar", Placement: "left",
		Guidance: "place the subject on the right and keep the left third open for text",
		MaxLines: 5,
	},
	"badgeSticker": {
		ID: "badgeSticker", Name: "Badge sticker", Placement: "corner",
		Guidance: "leave one corner clear for a round badge with short text",
		MaxLines: 2,
	},
	"subtleCaption": {
		ID: "subtleCaption", Name: "Subtle caption", Placement: "bottom-right",
		Guidance: "keep a small quiet area near the bottom right for a discreet caption",
		MaxLines: 1,
	},
}

// Layout resolves id to a layout spec; unknown ids get the negative space layout.
func Layout(id string) (LayoutSpec, bool) {
	if l, ok := layouts[id]; ok {
		return l, true
	}
	return layouts[DefaultLayoutID], false
}

func Layouts() []LayoutSpec {
	out := make([]LayoutSpec, 0, len(layouts))
	for _, l := range layouts {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ID == DefaultLayoutID {
			return true
		}
		if out[j].ID == DefaultLayoutID {
			return false
		}
		return out[i].ID < out[j].ID
	})
	return out
}
