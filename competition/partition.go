package competition

import "math/rand/v2"

// Shuffler permutes n elements through swap. It has the signature of rand.Shuffle
// so a seeded *rand.Rand can stand in for the global source in tests.
type Shuffler func(n int, swap func(i, j int))

// NewSeededShuffler returns a deterministic Shuffler.
func NewSeededShuffler(seed uint64) Shuffler {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)).Shuffle
}

// TeamCount returns how many teams a group of n archers splits into when teams
// hold at most maxTeamSize. A remainder of one is absorbed by the existing
// teams instead of forming a team of one.
func TeamCount(n, maxTeamSize int) int {
	if n <= 0 {
		return 0
	}
	if maxTeamSize <= 0 || n <= maxTeamSize {
		return 1
	}

	full, rem := n/maxTeamSize, n%maxTeamSize
	switch rem {
	case 0, 1:
		return full
	default:
		return full + 1
	}
}

// TeamSizes spreads n archers over the given number of teams; the first n%teams
// teams get one extra.
func TeamSizes(n, teams int) []int {
	if n <= 0 || teams <= 0 {
		return nil
	}
	sizes := make([]int, teams)
	base, extra := n/teams, n%teams
	for i := range sizes {
		sizes[i] = base
		if i < extra {
			sizes[i]++
		}
	}
	return sizes
}

// Partition shuffles members and splits them into balanced teams. The input
// slice is left untouched. A nil shuffle keeps the input order.
func Partition[T any](members []T, maxTeamSize int, shuffle Shuffler) [][]T {
	pool := make([]T, len(members))
	copy(pool, members)
	if shuffle != nil {
		shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	}

	sizes := TeamSizes(len(pool), TeamCount(len(pool), maxTeamSize))
	teams := make([][]T, 0, len(sizes))
	next := 0
	for _, size := range sizes {
		teams = append(teams, pool[next:next+size])
		next += size
	}
	return teams
}
