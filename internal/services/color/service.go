package color

import (
	"github.com/dkaymak/roomchat/internal/dependencies/random"
	"github.com/dkaymak/roomchat/internal/model"
)

// Palette is the fixed ordered set of display colors assigned to room
// members. Two entries are duplicated (#8E44AD and #D35400 each appear
// twice), so only 22 of the 24 entries are distinct; clients depend on
// the exact ordering, so the duplicates stay.
var Palette = []model.Color{
	"#4A90E2",
	"#50E3C2",
	"#F5A623",
	"#D0021B",
	"#8E44AD",
	"#2ECC71",
	"#E67E22",
	"#3498DB",
	"#1ABC9C",
	"#9B59B6",
	"#34495E",
	"#16A085",
	"#27AE60",
	"#2980B9",
	"#8E44AD",
	"#F39C12",
	"#D35400",
	"#C0392B",
	"#7F8C8D",
	"#2C3E50",
	"#1E824C",
	"#96281B",
	"#674172",
	"#D35400",
}

// Service picks display colors for users entering a room
type Service struct {
	random random.Random
}

// New creates a new color assignment service
func New(random random.Random) *Service {
	return &Service{random: random}
}

// Assign returns the first palette color not currently in use in the room.
// When every palette color is taken (more members than palette entries) it
// falls back to a uniformly random palette pick, allowing collisions. This
// is a deterministic-then-random fallback, not a collision-free guarantee.
func (s *Service) Assign(inUse []model.Color) model.Color {
	taken := make(map[model.Color]struct{}, len(inUse))
	for _, c := range inUse {
		taken[c] = struct{}{}
	}

	for _, c := range Palette {
		if _, ok := taken[c]; !ok {
			return c
		}
	}

	return Palette[s.random.Intn(len(Palette))]
}
