package user

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/gorilla/websocket"

	"kasuwa_back_end/internal/database"
	"kasuwa_back_end/internal/handlers/order"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Autoriser toutes les origines (à ajuster en production)
		return true
	},
}

// OrderStatusFeed pousse les changements de statut d'une commande en temps
// réel. Le handler de mise à jour publie sur Redis, chaque client connecté
// reçoit le même événement.
func OrderStatusFeed(c *gin.Context) {
	userID := c.GetString("user_id")
	orderID := c.Param("id")

	o, err := order.LoadOrder(orderID)
	if err == gocql.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if err != nil {
		log.Println("❌ Erreur lecture commande:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load order"})
		return
	}

	items, err := order.LoadOrderItems(orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load order"})
		return
	}

	actor := order.ActorFor(c, o, items)
	if !actor.IsAdmin && !actor.IsBuyer && !actor.IsSeller {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a party to this order"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Erreur upgrade WebSocket: %v", err)
		return
	}
	defer conn.Close()

	ctx := context.Background()

	pubsub := database.Redis.Subscribe(ctx, "orders:"+orderID)
	defer pubsub.Close()
	ch := pubsub.Channel()

	// État initial à la connexion
	conn.WriteJSON(map[string]interface{}{
		"type":           "connected",
		"order_id":       orderID,
		"status":         o.Status,
		"payment_status": o.PaymentStatus,
	})

	log.Printf("🔌 Feed commande %s ouvert pour %s", o.OrderNumber, userID)

	// Le reader ne sert qu'à détecter la déconnexion client
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event map[string]interface{}
			if json.Unmarshal([]byte(msg.Payload), &event) != nil {
				continue
			}
			event["type"] = "status_updated"
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
