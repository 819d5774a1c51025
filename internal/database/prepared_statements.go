package database

import (
	"log"
	"sync"

	"github.com/gocql/gocql"
)

var (
	// Prepared statements pour les chemins chauds
	stmtGetUserByEmail       *gocql.Query
	stmtGetUserByID          *gocql.Query
	stmtInsertUser           *gocql.Query
	stmtInsertUserByEmail    *gocql.Query
	stmtGetProductSnapshot   *gocql.Query
	stmtGetPaymentByRef      *gocql.Query
	stmtInsertPaymentByRef   *gocql.Query

	preparedOnce sync.Once
)

// InitPreparedStatements initialise les prepared statements
func InitPreparedStatements() {
	preparedOnce.Do(func() {
		usersSession, err := GetUsersSession()
		if err != nil {
			log.Printf("⚠️ Impossible d'initialiser les prepared statements users: %v", err)
			return
		}

		stmtGetUserByEmail = usersSession.Query("SELECT user_id FROM users_by_email WHERE email = ?")
		stmtGetUserByID = usersSession.Query(`SELECT email, password, name, role, provider, provider_id, phone, is_verified
			FROM users WHERE user_id = ?`)
		stmtInsertUser = usersSession.Query(`INSERT INTO users (user_id, email, password, name, role, provider, provider_id, phone, is_verified, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		stmtInsertUserByEmail = usersSession.Query("INSERT INTO users_by_email (email, user_id) VALUES (?, ?)")

		productsSession, err := GetProductsSession()
		if err != nil {
			log.Printf("⚠️ Impossible d'initialiser les prepared statements products: %v", err)
			return
		}
		// Snapshot complet pour le calcul de commande
		stmtGetProductSnapshot = productsSession.Query(`SELECT product_id, seller_id, title, brand, size, condition, price, domestic_shipping, quantity, sold
			FROM products WHERE product_id = ?`)

		ordersSession, err := GetOrdersSession()
		if err != nil {
			log.Printf("⚠️ Impossible d'initialiser les prepared statements orders: %v", err)
			return
		}
		// Lookup paiement par référence passerelle (verify + webhook)
		stmtGetPaymentByRef = ordersSession.Query("SELECT payment_id FROM payments_by_reference WHERE reference = ?")
		stmtInsertPaymentByRef = ordersSession.Query("INSERT INTO payments_by_reference (reference, payment_id) VALUES (?, ?)")

		log.Println("✅ Prepared statements initialisés")
	})
}

func GetPreparedGetUserByEmail() *gocql.Query {
	return stmtGetUserByEmail
}

func GetPreparedGetUserByID() *gocql.Query {
	return stmtGetUserByID
}

func GetPreparedInsertUser() *gocql.Query {
	return stmtInsertUser
}

func GetPreparedInsertUserByEmail() *gocql.Query {
	return stmtInsertUserByEmail
}

func GetPreparedGetProductSnapshot() *gocql.Query {
	return stmtGetProductSnapshot
}

func GetPreparedGetPaymentByRef() *gocql.Query {
	return stmtGetPaymentByRef
}

func GetPreparedInsertPaymentByRef() *gocql.Query {
	return stmtInsertPaymentByRef
}
