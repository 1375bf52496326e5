// Command order-producer publishes synthetic orders to the order intake
// topic. It is a load and smoke testing tool for local development.
package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	orderv1 "github.com/muhammadchandra19/marketplace/internal/domain/order/v1"
)

func main() {
	var (
		brokers     = flag.String("brokers", "localhost:9092", "Kafka broker addresses (comma-separated)")
		topic       = flag.String("topic", "orders", "Kafka topic name")
		count       = flag.Int("count", 1000, "Number of orders to generate")
		users       = flag.Int("users", 20, "Number of distinct users placing orders")
		products    = flag.String("products", "product-1", "Product IDs to order (comma-separated)")
		basePrice   = flag.Float64("base-price", 100.0, "Base price for orders")
		priceSpread = flag.Float64("price-spread", 10.0, "Price spread around the base price")
		maxVolume   = flag.Int64("max-volume", 50, "Maximum order volume")
		delay       = flag.Duration("delay", 100*time.Millisecond, "Delay between orders")
	)
	flag.Parse()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	productIDs := strings.Split(*products, ",")

	writer := &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(*brokers, ",")...),
		Topic:        *topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}
	defer writer.Close()

	ctx := context.Background()

	log.Printf("Sending %d orders to %s, topic %s", *count, *brokers, *topic)

	buys, sells := 0, 0
	for i := 0; i < *count; i++ {
		req := generateOrder(rng, productIDs, *users, *basePrice, *priceSpread, *maxVolume)
		if req.Side == orderv1.SideBuy {
			buys++
		} else {
			sells++
		}

		msg := kafka.Message{
			Key:   []byte(uuid.NewString()),
			Value: req.ToBytes(),
			Time:  time.Now(),
		}
		if err := writer.WriteMessages(ctx, msg); err != nil {
			log.Printf("Failed to send order %d: %v", i+1, err)
			continue
		}

		if (i+1)%100 == 0 || i == *count-1 {
			log.Printf("Sent order %d/%d: %s %s %d @ %s",
				i+1, *count, req.Side, req.ProductID, req.Volume, req.Price)
		}

		if i < *count-1 {
			time.Sleep(*delay)
		}
	}

	log.Printf("Done. %d buys, %d sells", buys, sells)
}

func generateOrder(rng *rand.Rand, productIDs []string, users int, basePrice, spread float64, maxVolume int64) *orderv1.PlaceOrderRequest {
	side := orderv1.SideBuy
	if rng.Float64() < 0.5 {
		side = orderv1.SideSell
	}

	// Buyers bid below the base price, sellers ask above it, so a share
	// of the generated orders cross and produce trades.
	var price float64
	if side == orderv1.SideBuy {
		price = basePrice + (rng.Float64()-0.3)*spread
	} else {
		price = basePrice + (rng.Float64()-0.7)*spread
	}
	if price <= 0 {
		price = basePrice
	}

	return &orderv1.PlaceOrderRequest{
		UserID:    uuid.NewSHA1(uuid.NameSpaceOID, []byte{byte(rng.Intn(users))}).String(),
		ProductID: productIDs[rng.Intn(len(productIDs))],
		Side:      side,
		Price:     decimal.NewFromFloat(price).Round(2),
		Volume:    rng.Int63n(maxVolume) + 1,
	}
}
