package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/pageza/recipehub/backend/config"
	"github.com/pageza/recipehub/backend/internal/apperror"
	"github.com/pageza/recipehub/backend/internal/blob"
	"github.com/pageza/recipehub/backend/internal/database"
	"github.com/pageza/recipehub/backend/internal/logging"
	"github.com/pageza/recipehub/backend/internal/models"
	"github.com/pageza/recipehub/backend/internal/service"
)

const seedPassword = "testpassword123"

type seedUser struct {
	email    string
	username string
}

type seedRecipe struct {
	owner       string
	name        string
	prepTime    int
	cookTime    int
	servings    int
	ingredients []string
	directions  []string
	tags        []string
	category    []string
}

var users = []seedUser{
	{email: "john.doe@example.com", username: "johndoe"},
	{email: "jane.smith@example.com", username: "janesmith"},
	{email: "bob.wilson@example.com", username: "bobwilson"},
}

var recipes = []seedRecipe{
	{
		owner: "johndoe", name: "Buttermilk Pancakes", prepTime: 10, cookTime: 15, servings: 4,
		ingredients: []string{"2 cups flour", "2 cups buttermilk", "2 eggs", "2 tbsp sugar", "1 tsp baking soda"},
		directions:  []string{"Whisk dry ingredients", "Add buttermilk and eggs", "Cook on a hot griddle"},
		tags:        []string{"breakfast", "sweet"}, category: []string{"breakfast"},
	},
	{
		owner: "janesmith", name: "Tomato Basil Soup", prepTime: 15, cookTime: 30, servings: 6,
		ingredients: []string{"2 lb tomatoes", "1 onion", "3 cloves garlic", "1 cup basil", "2 cups stock"},
		directions:  []string{"Saute onion and garlic", "Add tomatoes and stock", "Simmer and blend with basil"},
		tags:        []string{"vegetarian", "soup"}, category: []string{"lunch", "dinner"},
	},
	{
		owner: "janesmith", name: "Lemon Herb Chicken", prepTime: 20, cookTime: 40, servings: 4,
		ingredients: []string{"4 chicken thighs", "1 lemon", "2 tbsp thyme", "olive oil"},
		directions:  []string{"Marinate chicken", "Roast at 200C until done"},
		tags:        []string{"gluten-free"}, category: []string{"dinner"},
	},
	{
		owner: "bobwilson", name: "Chocolate Chip Cookies", prepTime: 15, cookTime: 12, servings: 24,
		ingredients: []string{"1 cup butter", "1 cup brown sugar", "2 eggs", "3 cups flour", "2 cups chocolate chips"},
		directions:  []string{"Cream butter and sugar", "Mix in eggs and flour", "Fold in chips", "Bake 12 minutes"},
		tags:        []string{"dessert", "sweet"}, category: []string{"baking"},
	},
}

// likes maps usernames to the recipe names they like.
var likes = map[string][]string{
	"johndoe":   {"Tomato Basil Soup", "Chocolate Chip Cookies"},
	"bobwilson": {"Tomato Basil Soup"},
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration:\n%v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel, cfg.Environment.IsDevelopment())

	db, err := database.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close(db)
	if err := database.RunMigrations(db, log); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := seed(ctx, cfg, db, log); err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}
	log.Info().Str("password", seedPassword).Msg("seed data ready")
}

func seed(ctx context.Context, cfg *config.Config, db *gorm.DB, log zerolog.Logger) error {
	authSvc := service.NewAuthService(db, service.NewGormRevocationStore(db), service.AuthConfig{
		JWTSecret:             cfg.JWTSecret,
		Issuer:                cfg.JWTIssuer,
		TokenTTL:              cfg.TokenTTL,
		DefaultProfilePicture: cfg.DefaultProfilePicture,
	}, log)
	recipeSvc := service.NewRecipeService(db, blob.NewGormStore(db), service.RecipeConfig{}, log)

	ids := make(map[string]uuid.UUID, len(users))
	for _, u := range users {
		user, err := authSvc.Register(ctx, service.RegisterInput{Email: u.email, Username: u.username, Password: seedPassword})
		if errors.Is(err, apperror.ErrConflict) {
			var existing models.User
			if err := db.WithContext(ctx).First(&existing, "username = ?", u.username).Error; err != nil {
				return fmt.Errorf("loading existing user %s: %w", u.username, err)
			}
			user = &existing
		} else if err != nil {
			return fmt.Errorf("creating user %s: %w", u.username, err)
		}
		ids[u.username] = user.ID
	}

	recipeIDs := make(map[string]uuid.UUID, len(recipes))
	for _, r := range recipes {
		owner := ids[r.owner]
		var existing models.Recipe
		err := db.WithContext(ctx).Where("name = ? AND user_id = ?", r.name, owner).First(&existing).Error
		if err == nil {
			recipeIDs[r.name] = existing.ID
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("checking recipe %s: %w", r.name, err)
		}

		created, err := recipeSvc.Engine().Create(ctx, &owner, r.payload())
		if err != nil {
			return fmt.Errorf("creating recipe %s: %w", r.name, err)
		}
		recipeIDs[r.name] = created.(models.RecipeView).ID
		log.Info().Str("recipe", r.name).Str("owner", r.owner).Msg("seeded recipe")
	}

	for username, names := range likes {
		for _, name := range names {
			var count int64
			err := db.WithContext(ctx).Model(&models.RecipeFavorite{}).
				Where("user_id = ? AND recipe_id = ?", ids[username], recipeIDs[name]).
				Count(&count).Error
			if err != nil {
				return fmt.Errorf("checking like: %w", err)
			}
			if count > 0 {
				continue
			}
			if _, err := recipeSvc.ToggleFavorite(ctx, ids[username], recipeIDs[name].String()); err != nil {
				return fmt.Errorf("liking %s as %s: %w", name, username, err)
			}
		}
	}
	return nil
}

// payload renders the recipe the way a JSON request body would decode.
func (r seedRecipe) payload() map[string]any {
	strs := func(in []string) []any {
		out := make([]any, len(in))
		for i, s := range in {
			out[i] = s
		}
		return out
	}
	return map[string]any{
		"name":        r.name,
		"title":       r.name,
		"prep_time":   float64(r.prepTime),
		"cook_time":   float64(r.cookTime),
		"servings":    float64(r.servings),
		"ingredients": strs(r.ingredients),
		"directions":  strs(r.directions),
		"tags":        strs(r.tags),
		"category":    strs(r.category),
	}
}
