// Package seed は空の名簿に投入するサンプル社員を生成します。
package seed

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/ogurasousui/codex-roster/internal/core/employee"
	"github.com/shopspring/decimal"
)

var (
	firstNames = []string{
		"John", "Jane", "Michael", "Sarah", "David", "Emma",
		"Daniel", "Olivia", "James", "Ava", "Robert", "Emily",
		"William", "Isabella", "Joseph", "Mia", "Charles", "Amelia",
		"Thomas", "Harper", "Matthew", "Evelyn", "Anthony", "Abigail",
		"Christopher", "Ella", "Joshua", "Elizabeth", "Andrew", "Sofia",
		"Ryan", "Madison", "Benjamin", "Scarlett", "Samuel", "Victoria",
		"Jacob", "Aria", "Nathan", "Grace", "Logan", "Chloe",
	}
	lastNames = []string{
		"Smith", "Johnson", "Williams", "Brown", "Jones",
		"Garcia", "Miller", "Davis", "Rodriguez", "Martinez",
		"Hernandez", "Lopez", "Gonzalez", "Wilson", "Anderson",
		"Thomas", "Taylor", "Moore", "Jackson", "Martin",
		"Lee", "Perez", "Thompson", "White", "Harris",
		"Sanchez", "Clark", "Ramirez", "Lewis", "Robinson",
		"Walker", "Young", "Allen", "King", "Wright",
		"Scott", "Torres", "Nguyen", "Hill", "Flores",
		"Green", "Adams",
	}
	titles = []string{"Developer", "Senior Developer", "Manager", "Analyst", "Engineer"}
	places = []struct{ city, state string }{
		{"Los Angeles", "CA"}, {"New York", "NY"}, {"Houston", "TX"}, {"Miami", "FL"}, {"Chicago", "IL"},
	}
)

// Generator はサンプル社員と給与割り当てを生成します。
type Generator struct {
	rng   *rand.Rand
	count int
}

// NewGenerator は count 件を生成する Generator を返します。rng が nil の場合は乱数源を自動で用意します。
func NewGenerator(count int, rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{rng: rng, count: count}
}

// Generate は today を基準にした社員と割り当てを生成します。
// 約 1 割は退職済みで、割り当ての終了日は退職日と一致します。
func (g *Generator) Generate(today time.Time) []*employee.ActiveAssignment {
	seen := make(map[string]struct{}, g.count)
	rows := make([]*employee.ActiveAssignment, 0, g.count)

	for len(rows) < g.count {
		ssn := g.ssn()
		if _, dup := seen[ssn]; dup {
			continue
		}
		seen[ssn] = struct{}{}

		age := g.between(22, 64)
		joinedYearsAgo := g.between(1, min(19, age-18))
		joined := today.AddDate(-joinedYearsAgo, 0, 0)

		var exit *time.Time
		if g.rng.IntN(10) == 0 {
			d := today.AddDate(0, 0, -g.between(1, 364))
			exit = &d
		}

		place := places[g.rng.IntN(len(places))]
		rows = append(rows, &employee.ActiveAssignment{
			Employee: employee.Employee{
				Name:     pick(g.rng, firstNames) + " " + pick(g.rng, lastNames),
				SSN:      ssn,
				DOB:      today.AddDate(-age, 0, 0),
				Address:  fmt.Sprintf("%d Main St", g.between(100, 9998)),
				City:     place.city,
				State:    place.state,
				Zip:      fmt.Sprintf("%05d", g.between(10000, 99998)),
				Phone:    fmt.Sprintf("(%d) %d-%d", g.between(200, 998), g.between(100, 998), g.between(1000, 9998)),
				JoinDate: joined,
				ExitDate: exit,
			},
			Assignment: employee.SalaryAssignment{
				FromDate: joined,
				ToDate:   exit,
				Title:    pick(g.rng, titles),
				Salary:   decimal.NewFromInt(int64(g.between(500, 1499)) * 100),
			},
		})
	}

	return rows
}

func (g *Generator) ssn() string {
	return fmt.Sprintf("%d-%d-%d", g.between(100, 998), g.between(10, 98), g.between(1000, 9998))
}

// between は [lo, hi] の一様乱数を返します。
func (g *Generator) between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + g.rng.IntN(hi-lo+1)
}

func pick(rng *rand.Rand, values []string) string {
	return values[rng.IntN(len(values))]
}
