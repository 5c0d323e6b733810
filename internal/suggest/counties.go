package suggest

// countyLocations lists the 21 Swedish counties. The feed tags
// county-wide events with exactly these names, so they are offered even
// when both live sources are unreachable.
var countyLocations = []string{
	"Blekinge län",
	"Dalarnas län",
	"Gotlands län",
	"Gävleborgs län",
	"Hallands län",
	"Jämtlands län",
	"Jönköpings län",
	"Kalmar län",
	"Kronobergs län",
	"Norrbottens län",
	"Skåne län",
	"Stockholms län",
	"Södermanlands län",
	"Uppsala län",
	"Värmlands län",
	"Västerbottens län",
	"Västernorrlands län",
	"Västmanlands län",
	"Västra Götalands län",
	"Örebro län",
	"Östergötlands län",
}

// Counties returns the static county list.
func Counties() []string {
	out := make([]string, len(countyLocations))
	copy(out, countyLocations)

	return out
}
