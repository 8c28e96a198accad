package picking

import (
	"strconv"
	"strings"
)

// Note tokens. Their concatenation order is fixed by NoteBuilder.
const (
	NoteBase         = "Bot:"
	NoteBatch        = "Batch"
	NotePLZFarRange  = "PLZ 1-4"
	NoteYesterday    = "Vortag"
	NoteSweeper      = "Rest"
	NoteSeni         = "Seni"
	NotePrio         = "PRIO"
	NotePartnerkunde = "Partnerkunde (Bitte Lieferschein ausdrucken)"

	NoteSizeS  = "S (bis 0.25)"
	NoteSizeM1 = "M1 (bis 0.5)"
	NoteSizeM2 = "M2 (bis 1)"
	NoteSizeL  = "L (bis 3)"
	NoteSizeXL = "XL (ab 3)"

	NoteAltruanLieferdienst = "Altruan Lieferdienst"
	NoteAbholung            = "Abholung"
	NotePalette             = "Palette"
)

// LabelShareTag prefixes the criterium tag carrying the label share,
// "LA_0_5" decoding to 0.5
const LabelShareTag = "LA_"

// CartSize is a trolley class with the note it stamps on a cart and the
// admissible order count per cart
type CartSize struct {
	Code string
	Note string
	Min  int
	Max  int
}

// CartSizes returns the trolley catalog in ascending label-share order.
// XXL maps to palettes and is skipped by the cart planners.
func CartSizes() []CartSize {
	return []CartSize{
		{Code: "S", Note: NoteSizeS, Min: 1, Max: 10},
		{Code: "M1", Note: NoteSizeM1, Min: 1, Max: 10},
		{Code: "M2", Note: NoteSizeM2, Min: 1, Max: 10},
		{Code: "L", Note: NoteSizeL, Min: 1, Max: 10},
		{Code: "XL", Note: NoteSizeXL, Min: 1, Max: 1},
		{Code: "XXL", Note: NotePalette, Min: 1, Max: 1},
	}
}

// labelShareDivider maps an upper label-share bound to its size note
type labelShareDivider struct {
	Limit float64
	Note  string
}

// labelShareDividers in ascending limit order; shares above the last limit
// are palette freight
var labelShareDividers = []labelShareDivider{
	{Limit: 0.25, Note: NoteSizeS},
	{Limit: 0.5, Note: NoteSizeM1},
	{Limit: 1, Note: NoteSizeM2},
	{Limit: 3, Note: NoteSizeL},
	{Limit: 9, Note: NoteSizeXL},
}

// PaletteLabelShare is the label share at and above which an order ships as
// palette freight
const PaletteLabelShare = 9

// ExtractLabelShare decodes the label-share float from the order's tag list.
// The tag format is "LA_<int>_<int>", e.g. "LA_0_5" for 0.5. The last
// well-formed tag wins; zero when none is present.
func ExtractLabelShare(criterium string) float64 {
	var share float64
	for _, tag := range strings.Split(criterium, ",") {
		tag = strings.TrimSpace(tag)
		if !strings.HasPrefix(tag, LabelShareTag) {
			continue
		}
		parts := strings.Split(tag, "_")
		if len(parts) < 3 {
			continue
		}
		value, err := strconv.ParseFloat(parts[1]+"."+parts[2], 64)
		if err != nil {
			continue
		}
		share = value
	}
	return share
}

// SizeNote maps a label share to its size note by ascending threshold.
// Shares of zero or above every divider are palettes.
func SizeNote(labelShare float64) string {
	if labelShare == 0 {
		return NotePalette
	}
	for _, divider := range labelShareDividers {
		if labelShare <= divider.Limit {
			return divider.Note
		}
	}
	return NotePalette
}
