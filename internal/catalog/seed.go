package catalog

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/campuscanteen/canteen-api/internal/models"
)

// Seed is the static fallback dataset. It keeps the storefront working
// when the hosted database is unreachable or not configured.
type Seed struct {
	MenuItems []models.MenuItem
	Offers    []models.Offer
}

type seedFile struct {
	MenuItems []seedMenuItem `yaml:"menu_items"`
	Offers    []seedOffer    `yaml:"offers"`
}

type seedMenuItem struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Price       int64  `yaml:"price"`
	Category    string `yaml:"category"`
	Veg         bool   `yaml:"veg"`
	ImageURL    string `yaml:"image_url"`
}

type seedOffer struct {
	ID          string `yaml:"id"`
	Code        string `yaml:"code"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Percentage  int    `yaml:"percentage"`
	ValidFrom   string `yaml:"valid_from"`
	ValidUntil  string `yaml:"valid_until"`
	ImageURL    string `yaml:"image_url"`
}

// LoadSeed reads a fallback dataset from a YAML file.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	seed := &Seed{}
	for _, it := range f.MenuItems {
		if it.ID == "" || it.Name == "" {
			return nil, fmt.Errorf("seed menu item missing id or name")
		}
		if it.Price < 0 {
			return nil, fmt.Errorf("seed menu item %s has negative price", it.ID)
		}
		seed.MenuItems = append(seed.MenuItems, models.MenuItem{
			ID:          it.ID,
			Name:        it.Name,
			Description: it.Description,
			Price:       it.Price,
			Category:    it.Category,
			Veg:         it.Veg,
			Available:   true,
			ImageURL:    it.ImageURL,
		})
	}
	for _, o := range f.Offers {
		from, err := time.Parse("2006-01-02", o.ValidFrom)
		if err != nil {
			return nil, fmt.Errorf("seed offer %s: bad valid_from: %w", o.ID, err)
		}
		until, err := time.Parse("2006-01-02", o.ValidUntil)
		if err != nil {
			return nil, fmt.Errorf("seed offer %s: bad valid_until: %w", o.ID, err)
		}
		if until.Before(from) {
			return nil, fmt.Errorf("seed offer %s: valid_until before valid_from", o.ID)
		}
		if o.Percentage < 0 || o.Percentage > 100 {
			return nil, fmt.Errorf("seed offer %s: percentage out of range", o.ID)
		}
		seed.Offers = append(seed.Offers, models.Offer{
			ID:          o.ID,
			Code:        o.Code,
			Title:       o.Title,
			Description: o.Description,
			Percentage:  o.Percentage,
			ValidFrom:   from,
			ValidUntil:  until,
			Active:      true,
			ImageURL:    o.ImageURL,
		})
	}
	return seed, nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DefaultSeed returns the compiled-in canteen menu and combo offers.
func DefaultSeed() *Seed {
	return &Seed{
		MenuItems: []models.MenuItem{
			{ID: "m001", Category: "Indian", Name: "Idly", Price: 20, Veg: true, Available: true, Description: "Soft idly with coconut chutney"},
			{ID: "m002", Category: "Indian", Name: "Masala Dosa", Price: 40, Veg: true, Available: true, Description: "Crispy dosa with potato masala"},
			{ID: "m009", Category: "Indian", Name: "Paneer Butter Masala", Price: 90, Veg: true, Available: true, Description: "Creamy paneer curry"},
			{ID: "m010", Category: "Indian", Name: "Veg Pulao", Price: 70, Veg: true, Available: true, Description: "Fragrant vegetable pulao"},
			{ID: "m011", Category: "Indian", Name: "Chicken Biryani", Price: 160, Veg: false, Available: true, Description: "Aromatic chicken biryani"},
			{ID: "m003", Category: "Chinese", Name: "Veg Fried Rice", Price: 60, Veg: true, Available: true, Description: "Wok-fried rice with vegetables"},
			{ID: "m004", Category: "Chinese", Name: "Chicken Manchurian", Price: 120, Veg: false, Available: true, Description: "Saucy chicken balls"},
			{ID: "m012", Category: "Chinese", Name: "Hakka Noodles", Price: 80, Veg: true, Available: true, Description: "Stir-fried noodles"},
			{ID: "m013", Category: "Chinese", Name: "Schezwan Noodles", Price: 95, Veg: false, Available: true, Description: "Spicy noodles"},
			{ID: "m005", Category: "Japanese", Name: "Sushi Platter", Price: 220, Veg: false, Available: true, Description: "Assorted sushi"},
			{ID: "m014", Category: "Japanese", Name: "Ramen", Price: 120, Veg: false, Available: true, Description: "Rich broth ramen"},
			{ID: "m006", Category: "Italian", Name: "Spaghetti Aglio", Price: 150, Veg: true, Available: true, Description: "Garlic & olive oil spaghetti"},
			{ID: "m015", Category: "Italian", Name: "Margherita Pizza", Price: 130, Veg: true, Available: true, Description: "Classic cheese pizza"},
			{ID: "m016", Category: "Italian", Name: "Penne Arrabbiata", Price: 140, Veg: true, Available: true, Description: "Spicy tomato penne"},
			{ID: "m007", Category: "Mexican", Name: "Chicken Tacos", Price: 130, Veg: false, Available: true, Description: "Grilled chicken tacos"},
			{ID: "m017", Category: "Mexican", Name: "Veg Burrito", Price: 120, Veg: true, Available: true, Description: "Rice & beans wrap"},
			{ID: "m008", Category: "Snacks", Name: "Samosa", Price: 15, Veg: true, Available: true, Description: "Crispy potato samosa"},
			{ID: "m018", Category: "Snacks", Name: "French Fries", Price: 50, Veg: true, Available: true, Description: "Crispy fries"},
			{ID: "m019", Category: "Snacks", Name: "Veg Wrap", Price: 75, Veg: true, Available: true, Description: "Grilled veg wrap"},
			{ID: "b001", Category: "Beverages", Name: "Cold Coffee", Price: 40, Veg: true, Available: true, Description: "Iced coffee"},
			{ID: "b002", Category: "Beverages", Name: "Hot Coffee", Price: 30, Veg: true, Available: true, Description: "Brewed coffee"},
			{ID: "b003", Category: "Beverages", Name: "Masala Chai", Price: 15, Veg: true, Available: true, Description: "Indian spiced tea"},
			{ID: "b004", Category: "Beverages", Name: "Lemonade", Price: 25, Veg: true, Available: true, Description: "Refreshingly sour-sweet"},
			{ID: "b005", Category: "Beverages", Name: "Cold Drink", Price: 35, Veg: true, Available: true, Description: "Soft drinks"},
			{ID: "d001", Category: "Desserts", Name: "Gulab Jamun", Price: 30, Veg: true, Available: true, Description: "Syrupy sweet balls"},
			{ID: "d002", Category: "Desserts", Name: "Chocolate Brownie", Price: 50, Veg: true, Available: true, Description: "Chocolate fudge brownie"},
		},
		Offers: []models.Offer{
			{ID: "c001", Code: "VEGSTART", Title: "Veg Breakfast Combo", Description: "Idly + Vada + Cold Coffee", Percentage: 10,
				ValidFrom: date(2025, 11, 1), ValidUntil: date(2025, 12, 31), Active: true},
			{ID: "c002", Code: "CHICKDEAL", Title: "Chicken Combo", Description: "Chicken Roll + Fries + Drink", Percentage: 15,
				ValidFrom: date(2025, 11, 1), ValidUntil: date(2025, 12, 31), Active: true},
			{ID: "c003", Code: "SNACKS50", Title: "Snack Saver", Description: "Samosa + Tea + Biscuit", Percentage: 20,
				ValidFrom: date(2025, 11, 1), ValidUntil: date(2025, 12, 31), Active: true},
			{ID: "c004", Code: "BIRYANI25", Title: "Biryani Bonanza", Description: "Chicken Biryani + Raita + Gulab Jamun", Percentage: 25,
				ValidFrom: date(2025, 11, 1), ValidUntil: date(2025, 12, 31), Active: true},
		},
	}
}
