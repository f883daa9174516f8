package library

import (
	"math/rand/v2"
	"sort"

	"github.com/pders01/crate/internal/storage"
)

// arrange orders albums so the same artist is never adjacent when that is
// possible. At each step it takes from the artist with the most albums left
// that differs from the previous pick; ties are broken randomly.
func arrange(albums []*storage.Album, rng *rand.Rand) []*storage.Album {
	byArtist := make(map[string][]*storage.Album)
	var artists []string
	for _, a := range albums {
		if _, ok := byArtist[a.Artist]; !ok {
			artists = append(artists, a.Artist)
		}
		byArtist[a.Artist] = append(byArtist[a.Artist], a)
	}
	sort.Strings(artists)
	for _, artist := range artists {
		queue := byArtist[artist]
		rng.Shuffle(len(queue), func(i, j int) { queue[i], queue[j] = queue[j], queue[i] })
	}

	out := make([]*storage.Album, 0, len(albums))
	last := ""
	for len(out) < len(albums) {
		var best []string
		bestLen := 0
		for _, artist := range artists {
			n := len(byArtist[artist])
			if n == 0 || (artist == last && len(out) > 0) {
				continue
			}
			switch {
			case n > bestLen:
				best, bestLen = []string{artist}, n
			case n == bestLen:
				best = append(best, artist)
			}
		}
		if len(best) == 0 {
			// Only the previous artist is left.
			best = []string{last}
		}
		pick := best[rng.IntN(len(best))]
		queue := byArtist[pick]
		out = append(out, queue[0])
		byArtist[pick] = queue[1:]
		last = pick
	}
	return out
}
