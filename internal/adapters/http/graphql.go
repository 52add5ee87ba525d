package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/agrobot/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services. All fields
// act on the caller resolved by UserIDMiddleware.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	gw := instrumentedGateway{svc: deps.Markers}

	markerType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Marker",
		Fields: graphql.Fields{
			"id":    &graphql.Field{Type: graphql.String},
			"lat":   &graphql.Field{Type: graphql.Float},
			"lng":   &graphql.Field{Type: graphql.Float},
			"title": &graphql.Field{Type: graphql.String},
		},
	})

	boundsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Bounds",
		Fields: graphql.Fields{
			"minLat": &graphql.Field{Type: graphql.Float, Resolve: boundsField(func(b domain.Bounds) float64 { return b.MinLat })},
			"minLng": &graphql.Field{Type: graphql.Float, Resolve: boundsField(func(b domain.Bounds) float64 { return b.MinLng })},
			"maxLat": &graphql.Field{Type: graphql.Float, Resolve: boundsField(func(b domain.Bounds) float64 { return b.MaxLat })},
			"maxLng": &graphql.Field{Type: graphql.Float, Resolve: boundsField(func(b domain.Bounds) float64 { return b.MaxLng })},
		},
	})

	documentType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MarkerDocument",
		Fields: graphql.Fields{
			"markers": &graphql.Field{Type: graphql.NewList(markerType)},
			"count": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return len(p.Source.(*domain.MarkerDocument).Markers), nil
				},
			},
			"updatedAt": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*domain.MarkerDocument).UpdatedAt.UTC().Format(time.RFC3339Nano), nil
				},
			},
			"bounds": &graphql.Field{
				Type:        boundsType,
				Description: "Bounding box of all markers; null when there are none",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					b, ok := domain.BoundsOf(p.Source.(*domain.MarkerDocument).Markers)
					if !ok {
						return nil, nil
					}
					return b, nil
				},
			},
		},
	})

	nearbyType := graphql.NewObject(graphql.ObjectConfig{
		Name: "NearbyMarker",
		Fields: graphql.Fields{
			"marker": &graphql.Field{
				Type: markerType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.NearbyMarker).Marker, nil
				},
			},
			"distanceMeters": &graphql.Field{
				Type: graphql.Float,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.NearbyMarker).DistanceMeters, nil
				},
			},
		},
	})

	markerInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "MarkerInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"id":    &graphql.InputObjectFieldConfig{Type: graphql.String},
			"lat":   &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"lng":   &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"title": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"markers": &graphql.Field{
				Type:        documentType,
				Description: "The caller's saved markers; null when nothing was saved yet",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					doc, err := gw.Document(p.Context, UserIDFromCtx(p.Context))
					if errors.Is(err, domain.ErrNotFound) {
						return nil, nil
					}
					if err != nil {
						return nil, graphQLError(err)
					}
					return doc, nil
				},
			},
			"markersNear": &graphql.Field{
				Type:        graphql.NewList(nearbyType),
				Description: "Saved markers within radiusMeters of a point, nearest first",
				Args: graphql.FieldConfigArgument{
					"lat":          &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lng":          &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radiusMeters": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 100.0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat, _ := p.Args["lat"].(float64)
					lng, _ := p.Args["lng"].(float64)
					radius, _ := p.Args["radiusMeters"].(float64)
					near, err := deps.Markers.Near(p.Context, UserIDFromCtx(p.Context), domain.GeoPoint{Lat: lat, Lng: lng}, radius)
					if err != nil {
						return nil, graphQLError(err)
					}
					return near, nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"saveMarkers": &graphql.Field{
				Type:        graphql.Int,
				Description: "Overwrite the caller's markers; returns the number saved",
				Args: graphql.FieldConfigArgument{
					"markers": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(markerInput)))},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					raw, _ := p.Args["markers"].([]interface{})
					markers := make([]domain.Marker, 0, len(raw))
					for _, item := range raw {
						m, _ := item.(map[string]interface{})
						id, _ := m["id"].(string)
						lat, _ := m["lat"].(float64)
						lng, _ := m["lng"].(float64)
						title, _ := m["title"].(string)
						markers = append(markers, domain.Marker{ID: id, Lat: lat, Lng: lng, Title: title})
					}
					if err := gw.SaveFromSession(p.Context, UserIDFromCtx(p.Context), "", markers); err != nil {
						return nil, graphQLError(err)
					}
					return len(markers), nil
				},
			},
			"clearMarkers": &graphql.Field{
				Type:        graphql.Boolean,
				Description: "Remove all of the caller's markers",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := gw.SaveFromSession(p.Context, UserIDFromCtx(p.Context), "", []domain.Marker{}); err != nil {
						return nil, graphQLError(err)
					}
					return true, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

func boundsField(get func(domain.Bounds) float64) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		return get(p.Source.(domain.Bounds)), nil
	}
}

// graphQLError hides backend details from GraphQL clients.
func graphQLError(err error) error {
	switch {
	case domain.IsInputError(err):
		return errors.New(userMessage(err))
	case errors.Is(err, domain.ErrUnauthenticated):
		return errors.New("a signed-in user is required")
	case errors.Is(err, domain.ErrTransport):
		return errors.New("storage backend unavailable")
	default:
		return errors.New("internal error")
	}
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
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		c.Set(fiber.HeaderCacheControl, "private, no-store")
		return c.JSON(result)
	}
}
