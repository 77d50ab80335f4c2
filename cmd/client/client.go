// Command client is a flag-driven CLI against the exchange's HTTP API,
// replacing the teacher's raw-TCP client (binary NewOrder/CancelOrder
// messages over net.Dial) with go-resty/resty/v2 requests against the JSON
// surface of spec.md §6. Grounded on 0xtitan6-polymarket-mm's use of
// go-resty for a trading client.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/go-resty/resty/v2"
)

func main() {
	serverAddr := flag.String("server", "http://127.0.0.1:8080", "Address of the exchange server")
	apiKey := flag.String("api-key", "", "API key for authenticated actions")
	action := flag.String("action", "place", "Action to perform: ['place', 'cancel', 'orders', 'account']")

	ticker := flag.String("ticker", "AAPL", "Ticker symbol")
	side := flag.String("side", "buy", "Order side: 'buy' or 'sell'")
	orderType := flag.String("type", "limit", "Order type: 'limit' or 'market'")
	price := flag.String("price", "100.00", "Limit price")
	qty := flag.Int64("qty", 10, "Quantity")

	orderID := flag.String("order-id", "", "Order id to cancel")

	flag.Parse()

	client := resty.New().SetBaseURL(*serverAddr)
	if *apiKey != "" {
		client.SetHeader("X-API-Key", *apiKey)
	}

	switch strings.ToLower(*action) {
	case "place":
		body := map[string]any{
			"ticker":     strings.ToUpper(*ticker),
			"side":       strings.ToUpper(*side),
			"order_type": strings.ToUpper(*orderType),
			"quantity":   *qty,
		}
		if strings.ToLower(*orderType) == "limit" {
			body["price"] = *price
		}
		resp, err := client.R().SetBody(body).Post("/api/v1/orders")
		printResult("place order", resp, err)

	case "cancel":
		if *orderID == "" {
			log.Fatal("-order-id is required for cancel")
		}
		resp, err := client.R().Delete("/api/v1/orders/" + *orderID)
		printResult("cancel order", resp, err)

	case "orders":
		resp, err := client.R().Get("/api/v1/orders")
		printResult("list orders", resp, err)

	case "account":
		resp, err := client.R().Get("/api/v1/account")
		printResult("get account", resp, err)

	default:
		log.Fatalf("unknown action: %s", *action)
	}
}

func printResult(label string, resp *resty.Response, err error) {
	if err != nil {
		log.Fatalf("%s failed: %v", label, err)
	}
	fmt.Printf("%s -> %s\n%s\n", label, resp.Status(), resp.String())
}
