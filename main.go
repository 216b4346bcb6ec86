package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/spooky-finn/go-live-markets/domain"
	"github.com/spooky-finn/go-live-markets/provider"
)

func main() {
	godotenv.Load()

	symbol, err := domain.NewMarketSymbolFromString("xmr_btc")
	if err != nil {
		fmt.Printf("invalid symbol: %s\n", err)
		os.Exit(1)
	}

	subs := domain.NewSubscriptionSet()
	subs.Register(domain.ChannelLiveFullOrderBook, symbol)
	subs.Register(domain.ChannelLiveTrades, symbol)

	dispatcher := domain.NewEventDispatcher()

	bot, err := provider.NewStreamBot(domain.ExchangeBittrex, domain.Credentials{
		APIKey:     os.Getenv("BITTREX_API_KEY"),
		APISecret:  os.Getenv("BITTREX_API_SECRET"),
		CustomerID: os.Getenv("BITTREX_CUSTOMER_ID"),
	}, subs, dispatcher)
	if err != nil {
		fmt.Printf("failed to create stream bot: %s\n", err)
		os.Exit(1)
	}

	subscription := dispatcher.Subscribe()
	defer subscription.Unsubscribe()

	if err := bot.Connect(); err != nil {
		fmt.Printf("failed to connect: %s\n", err)
		os.Exit(1)
	}
	defer bot.Close()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-stop:
			return
		case envelope := <-subscription.Stream:
			printEvent(envelope)
		}
	}
}

func printEvent(envelope domain.LiveEventEnvelope) {
	switch envelope.Event.Type {
	case domain.LiveEventTypeTrade:
		t := envelope.Event.Trade
		fmt.Printf("[%s] trade %s %s %s @ %s\n", envelope.Exchange, t.Symbol, t.Side, t.Amount, t.Price)
	case domain.LiveEventTypeOrderBook:
		book := envelope.Event.OrderBook
		fmt.Printf("[%s] book %s asks=%d bids=%d avg=%v\n",
			envelope.Exchange, book.Symbol, len(book.Asks), len(book.Bids), book.AvgPrice())
	}
}
