package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
)

func main() {
	serverAddr := flag.String("server", "http://127.0.0.1:8080", "Address of the exchange server")
	action := flag.String("action", "place_limit", "Action to perform: place_limit, place_market, cancel_limit")

	symbol := flag.String("symbol", "BTCUSD", "Symbol tag")
	side := flag.String("side", "bid", "Order side: 'ask' or 'bid'")
	price := flag.String("price", "", "Limit price (decimal string, required for place_limit)")
	amount := flag.String("amount", "", "Order size (decimal string, required for place_limit/place_market)")
	orderID := flag.String("order_id", "", "Order id to cancel (required for cancel_limit)")

	flag.Parse()

	params := url.Values{"action": {*action}}
	switch strings.ToLower(*action) {
	case "place_limit":
		params.Set("symbol", *symbol)
		params.Set("side", *side)
		params.Set("price", *price)
		params.Set("amount", *amount)
	case "place_market":
		params.Set("symbol", *symbol)
		params.Set("side", *side)
		params.Set("amount", *amount)
	case "cancel_limit":
		params.Set("order_id", *orderID)
	default:
		log.Fatalf("unknown action: %s", *action)
	}

	reqURL := strings.TrimRight(*serverAddr, "/") + "/api?" + params.Encode()
	resp, err := http.Get(reqURL)
	if err != nil {
		log.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("reading response failed: %v", err)
	}

	var pretty map[string]any
	if err := json.Unmarshal(body, &pretty); err != nil {
		fmt.Println(string(body))
		return
	}
	encoded, _ := json.MarshalIndent(pretty, "", "  ")
	fmt.Println(string(encoded))
}
