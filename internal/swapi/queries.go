package swapi

import (
	"fmt"

	"github.com/mrlokans/holonet/internal/entities"
)

// connection names the root field of the SWAPI schema serving one label.
type connection struct {
	field string
	query string
}

var connections = map[entities.Label]connection{
	entities.LabelPersons:   newConnection("AllPeople", "allPeople"),
	entities.LabelStarships: newConnection("AllStarships", "allStarships"),
	entities.LabelPlanets:   newConnection("AllPlanets", "allPlanets"),
}

func newConnection(operation, field string) connection {
	return connection{
		field: field,
		query: fmt.Sprintf(`query %s($first: Int, $after: String) {
  %s(first: $first, after: $after) {
    pageInfo { hasNextPage endCursor }
    edges {
      cursor
      node { id name filmConnection { totalCount } }
    }
  }
}`, operation, field),
	}
}
