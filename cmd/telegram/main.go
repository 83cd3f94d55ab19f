package main

import (
	"context"
	"fmt"
	"medbot/internal/config"
	telegrambotmessagesender "medbot/internal/implementations/telegram_bot_message_sender"
	"os"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	sender := telegrambotmessagesender.New(
		cfg.TelegramBaseURL,
		cfg.TelegramBotToken,
		cfg.TelegramRequestTimeout,
		cfg.TelegramMessagesPerSecond,
	)
	url := cfg.TelegramWebhookURL()
	if err := sender.SetWebhook(context.Background(), url); err != nil {
		fmt.Fprintf(os.Stderr, "could not register telegram webhook, error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Webhook %s successfully registered\n", url)
}
