package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"catalogsync/internal/app"
	"catalogsync/internal/config"
	"catalogsync/internal/logger"
)

// go run ./cmd/crawler -mode=brands
// go run ./cmd/crawler -mode=products -brand=samsung-phones-9
// go run ./cmd/crawler -mode=specs -product=apple_iphone_15-12559
// go run ./cmd/crawler -mode=random
func main() {
	mode := flag.String("mode", "brands", "Modo de execução: 'brands', 'products', 'specs' ou 'random'")
	brand := flag.String("brand", "", "ID da marca (vazio = todas as marcas)")
	product := flag.String("product", "", "ID do produto para o modo specs")
	flag.Parse()

	cfg := config.Load()
	zl, err := logger.New(cfg.AppEnv, cfg.Logger)
	if err != nil {
		log.Fatalf("Erro ao criar logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("erro ao iniciar dependências", zap.Error(err))
	}
	defer a.Close()

	switch *mode {
	case "brands":
		_, err = a.Jobs.RefreshBrands(ctx)
	case "products":
		if *brand == "" {
			_, err = a.Jobs.RefreshProducts(ctx)
			break
		}
		var n int
		n, err = a.Crawler.SyncProducts(ctx, *brand)
		zl.Info("produtos gravados", zap.String("brand", *brand), zap.Int("products", n))
	case "specs":
		if *product == "" {
			zl.Fatal("informe -product no modo specs")
		}
		_, err = a.Crawler.SyncSpecs(ctx, *product)
	case "random":
		_, err = a.Jobs.RefreshSpecs(ctx)
	default:
		zl.Fatal("modo desconhecido", zap.String("mode", *mode))
	}

	if err != nil {
		zl.Error("crawler finalizado com erro", zap.Error(err))
		return
	}
	zl.Info("Crawler finalizado")
}
