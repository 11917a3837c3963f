package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/nmoreno/fiestero/internal/core/domain"
	"github.com/nmoreno/fiestero/internal/core/usecases"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	productType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Product",
		Fields: graphql.Fields{
			"id":                    &graphql.Field{Type: graphql.String},
			"name":                  &graphql.Field{Type: graphql.String},
			"description":           &graphql.Field{Type: graphql.String},
			"category":              &graphql.Field{Type: graphql.String},
			"unit_price":            &graphql.Field{Type: graphql.String},
			"extra_hour_percentage": &graphql.Field{Type: graphql.String},
			"image_url":             &graphql.Field{Type: graphql.String},
			"active":                &graphql.Field{Type: graphql.Boolean},
		},
	})

	zoneType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Zone",
		Fields: graphql.Fields{
			"id":             &graphql.Field{Type: graphql.String},
			"name":           &graphql.Field{Type: graphql.String},
			"transport_cost": &graphql.Field{Type: graphql.String},
			"active":         &graphql.Field{Type: graphql.Boolean},
		},
	})

	transportQuoteType := graphql.NewObject(graphql.ObjectConfig{
		Name: "TransportQuote",
		Fields: graphql.Fields{
			"transport_cost": &graphql.Field{Type: graphql.String},
			"zone":           &graphql.Field{Type: zoneType},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type:        graphql.NewList(productType),
				Description: "List active catalog products",
				Args: graphql.FieldConfigArgument{
					"category": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					category := p.Args["category"].(string)
					return deps.Catalog.List(p.Context, category)
				},
			},
			"product": &graphql.Field{
				Type:        productType,
				Description: "Get a product by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					return deps.Catalog.GetByID(p.Context, id)
				},
			},
			"zones": &graphql.Field{
				Type:        graphql.NewList(zoneType),
				Description: "List all delivery zones",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Zones.List(p.Context)
				},
			},
			"transportQuote": &graphql.Field{
				Type:        transportQuoteType,
				Description: "Resolve a delivery address into a zone and transport cost",
				Args: graphql.FieldConfigArgument{
					"street":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"house_number": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"city":         &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					addr := &domain.Address{
						Street:      p.Args["street"].(string),
						HouseNumber: p.Args["house_number"].(string),
						City:        p.Args["city"].(string),
					}
					match, err := deps.Quotes.ResolveZone(p.Context, addr)
					if err != nil {
						return nil, err
					}
					result := map[string]interface{}{
						"transport_cost": usecases.TransportCost(match).String(),
					}
					if match.Zone != nil {
						result["zone"] = match.Zone
					}
					return result, nil
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
