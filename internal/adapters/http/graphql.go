package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/lursoto/wayfarer/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	placeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Place",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.String},
			"display_name": &graphql.Field{Type: graphql.String},
			"location":     &graphql.Field{Type: geoPointType},
			"type":         &graphql.Field{Type: graphql.String},
		},
	})

	poiType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PointOfInterest",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"name":        &graphql.Field{Type: graphql.String},
			"category":    &graphql.Field{Type: graphql.String},
			"description": &graphql.Field{Type: graphql.String},
			"location":    &graphql.Field{Type: geoPointType},
			"distance_km": &graphql.Field{Type: graphql.Float},
		},
	})

	stepType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RouteStep",
		Fields: graphql.Fields{
			"instruction":     &graphql.Field{Type: graphql.String},
			"distance_meters": &graphql.Field{Type: graphql.Float},
		},
	})

	routeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Route",
		Fields: graphql.Fields{
			"geometry":         &graphql.Field{Type: graphql.NewList(geoPointType)},
			"distance_km":      &graphql.Field{Type: graphql.Float},
			"duration_minutes": &graphql.Field{Type: graphql.Int},
			"steps":            &graphql.Field{Type: graphql.NewList(stepType)},
			"fallback":         &graphql.Field{Type: graphql.Boolean},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"placeSearch": &graphql.Field{
				Type:        graphql.NewList(placeType),
				Description: "Resolve a free-text query to place candidates",
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q := p.Args["query"].(string)
					return deps.Geocoding.SearchByText(p.Context, q), nil
				},
			},
			"reversePlace": &graphql.Field{
				Type:        placeType,
				Description: "Resolve a coordinate to the nearest named place",
				Args: graphql.FieldConfigArgument{
					"lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					point := domain.GeoPoint{
						Lat: p.Args["lat"].(float64),
						Lon: p.Args["lon"].(float64),
					}
					if !point.Valid() {
						return nil, errors.New("invalid coordinate")
					}
					return deps.Geocoding.Reverse(p.Context, point), nil
				},
			},
			"nearbyPois": &graphql.Field{
				Type:        graphql.NewList(poiType),
				Description: "Points of interest around a coordinate",
				Args: graphql.FieldConfigArgument{
					"lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					origin := domain.GeoPoint{
						Lat: p.Args["lat"].(float64),
						Lon: p.Args["lon"].(float64),
					}
					if !origin.Valid() {
						return nil, errors.New("invalid coordinate")
					}
					return deps.Discovery.Discover(p.Context, origin), nil
				},
			},
			"route": &graphql.Field{
				Type:        routeType,
				Description: "Resolve a route between two points",
				Args: graphql.FieldConfigArgument{
					"originLat":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"originLon":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"destLat":         &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"destLon":         &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"destinationName": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
					"mode":            &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "driving"},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					origin := domain.GeoPoint{
						Lat: p.Args["originLat"].(float64),
						Lon: p.Args["originLon"].(float64),
					}
					dest := domain.GeoPoint{
						Lat: p.Args["destLat"].(float64),
						Lon: p.Args["destLon"].(float64),
					}
					if !origin.Valid() || !dest.Valid() {
						return nil, errors.New("invalid coordinate")
					}
					name := p.Args["destinationName"].(string)
					mode := domain.TransportMode(p.Args["mode"].(string))
					return deps.Routes.Resolve(p.Context, origin, dest, name, mode), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
