package main

import (
	"database/sql"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	jwtware "github.com/gofiber/jwt/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/pattarin-dev/shopsync/internal/address"
	"github.com/pattarin-dev/shopsync/internal/cart"
	"github.com/pattarin-dev/shopsync/internal/config"
	"github.com/pattarin-dev/shopsync/internal/favorite"
	"github.com/pattarin-dev/shopsync/internal/order"
	"github.com/pattarin-dev/shopsync/internal/product"
	"github.com/pattarin-dev/shopsync/internal/user"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	db := mustOpenDB(cfg.DatabaseURL)
	defer db.Close()
	ensureSchema(db)
	seedProducts(db)

	app := fiber.New()
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(logger.New())

	userHandler := user.NewHandler(user.NewService(user.NewPostgresRepository(db)), cfg.JWTSecret)
	productService := product.NewService(product.NewPostgresRepository(db))
	productHandler := product.NewHandler(productService)
	cartHandler := cart.NewHandler(cart.NewService(cart.NewPostgresRepository(db)))
	orderHandler := order.NewHandler(order.NewService(order.NewPostgresRepository(db)), productService)
	addressHandler := address.NewHandler(address.NewService(address.NewPostgresRepository(db)))
	favoriteHandler := favorite.NewHandler(favorite.NewService(favorite.NewPostgresRepository(db), productService))

	app.Get("/api/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "OK"})
	})

	// public routes first, then the jwt gate, then everything user-scoped
	userHandler.RegisterPublicRoutes(app)
	productHandler.RegisterPublicRoutes(app)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWTSecret),
	}))

	userHandler.RegisterProtectedRoutes(app)
	cartHandler.RegisterProtectedRoutes(app)
	orderHandler.RegisterProtectedRoutes(app)
	addressHandler.RegisterProtectedRoutes(app)
	favoriteHandler.RegisterProtectedRoutes(app)

	log.Printf("listening on %s", cfg.Addr)
	if err := app.Listen(cfg.Addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func mustOpenDB(dbURL string) *sql.DB {
	if dbURL == "" {
		panic("DATABASE_URL is not set")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		panic(err)
	}
	if err := db.Ping(); err != nil {
		panic(err)
	}
	return db
}

func ensureSchema(db *sql.DB) {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			address TEXT,
			phone TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price NUMERIC(12,2) NOT NULL CHECK (price >= 0),
			image_url TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			stock INT NOT NULL DEFAULT 0 CHECK (stock >= 0)
		)`,
		`CREATE TABLE IF NOT EXISTS cart (
			id SERIAL PRIMARY KEY,
			user_id INT NOT NULL,
			product_id INT NOT NULL REFERENCES products (id),
			quantity INT NOT NULL CHECK (quantity >= 1),
			UNIQUE (user_id, product_id)
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id SERIAL PRIMARY KEY,
			user_id INT NOT NULL,
			total_amount NUMERIC(12,2) NOT NULL,
			shipping_address TEXT NOT NULL,
			payment_method TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'Pending',
			order_date TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id SERIAL PRIMARY KEY,
			order_id INT NOT NULL REFERENCES orders (id),
			product_id INT NOT NULL,
			quantity INT NOT NULL CHECK (quantity >= 1),
			price NUMERIC(12,2) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS addresses (
			id SERIAL PRIMARY KEY,
			user_id INT NOT NULL,
			label TEXT NOT NULL DEFAULT '',
			line TEXT NOT NULL,
			phone TEXT NOT NULL DEFAULT '',
			is_default BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS favorites (
			id SERIAL PRIMARY KEY,
			user_id INT NOT NULL,
			product_id INT NOT NULL REFERENCES products (id),
			UNIQUE (user_id, product_id)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			panic(err)
		}
	}
}

// seedProducts loads a small starter catalog when the table is empty so a
// fresh database is browsable immediately.
func seedProducts(db *sql.DB) {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM products`).Scan(&count); err != nil || count > 0 {
		return
	}

	seed := []struct {
		name, desc, img, category string
		price                     string
		stock                     int
	}{
		{"iPhone 14 Pro", "Latest Apple smartphone with advanced camera and A16 Bionic chip", "https://images.unsplash.com/photo-1592899677977-9c10ca588bbd?w=400", "electronics", "999.99", 50},
		{"Samsung Galaxy S23", "Powerful Android smartphone with amazing display and camera", "https://images.unsplash.com/photo-1511707171634-5f897ff02aa9?w=400", "electronics", "849.99", 30},
		{"MacBook Pro 16\"", "Apple laptop for professionals with M2 chip and Retina display", "https://images.unsplash.com/photo-1541807084-5c52b6b3adef?w=400", "electronics", "2399.99", 20},
		{"Nike Air Max 270", "Comfortable running shoes with air cushioning technology", "https://images.unsplash.com/photo-1542291026-7eec264c27ff?w=400", "fashion", "149.99", 100},
		{"Sony WH-1000XM4", "Wireless noise-canceling headphones with premium sound quality", "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=400", "electronics", "349.99", 40},
		{"Designer Watch", "Luxury wrist watch with leather strap and premium finish", "https://images.unsplash.com/photo-1523170335258-f5ed11844a49?w=400", "accessories", "299.99", 25},
	}
	for _, s := range seed {
		if _, err := db.Exec(
			`INSERT INTO products (name, description, price, image_url, category, stock) VALUES ($1,$2,$3,$4,$5,$6)`,
			s.name, s.desc, s.price, s.img, s.category, s.stock,
		); err != nil {
			log.Printf("warning: could not seed product %q: %v", s.name, err)
		}
	}
}
