package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/KraitOPP/PerishPro-sub000/internal/api/events"
	"github.com/KraitOPP/PerishPro-sub000/internal/database"
	"github.com/KraitOPP/PerishPro-sub000/internal/global"
	"github.com/KraitOPP/PerishPro-sub000/internal/logger"
	"github.com/KraitOPP/PerishPro-sub000/internal/utility"
	"github.com/KraitOPP/PerishPro-sub000/internal/worker"

	"github.com/gofiber/fiber/v3"
)

func initLogger() {
	if err := logger.Init(nil); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	logger.GetAppLogger().Info("Logger system initialized successfully")
}

// resolvePath đường dẫn tương đối tính từ thư mục gốc project (thư mục chứa config/env)
func resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	currentDir, err := os.Getwd()
	if err != nil {
		return path
	}
	for {
		if _, err := os.Stat(filepath.Join(currentDir, "config", "env")); err == nil {
			return filepath.Join(currentDir, path)
		}
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return path
		}
		currentDir = parentDir
	}
}

func main_thread(app *fiber.App) {
	cfg := global.MongoDB_ServerConfig
	address := cfg.Address

	log := logger.GetAppLogger()
	log.Info("Starting Fiber server...")

	listenConfig := fiber.ListenConfig{DisableStartupMessage: true}

	if cfg.EnableTLS && cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		certPath := resolvePath(cfg.TLSCertFile)
		keyPath := resolvePath(cfg.TLSKeyFile)

		cert, err := tls.LoadX509KeyPair(certPath, keyPath)
		if err != nil {
			log.Fatalf("Error loading TLS certificate: %v", err)
		}

		ln, err := net.Listen("tcp", address)
		if err != nil {
			log.Fatalf("Error creating listener: %v", err)
		}
		tlsListener := tls.NewListener(ln, &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		})

		log.WithFields(map[string]interface{}{
			"address": address,
			"cert":    certPath,
		}).Info("Starting server with HTTPS/TLS")

		if err := app.Listener(tlsListener, listenConfig); err != nil {
			log.Fatalf("Error in Fiber Listener with TLS: %v", err)
		}
		return
	}

	log.WithFields(map[string]interface{}{
		"address":  address,
		"protocol": "HTTP",
	}).Info("Starting server with HTTP")

	if err := app.Listen(address, listenConfig); err != nil {
		log.Fatalf("Error in Fiber Listen: %v", err)
	}
}

func main() {
	initLogger()

	InitGlobal()

	InitRegistry()

	InitDefaultData()

	services := InitServices()
	app := InitFiberApp(services)

	log := logger.GetAppLogger()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Worker làm mới daysToExpiry và status theo ngày
	cfg := global.MongoDB_ServerConfig
	if cfg.ExpiryWorkerEnabled {
		w := worker.NewExpiryRefreshWorker(
			services.ProductStore,
			time.Duration(cfg.ExpiryWorkerIntervalMinutes)*time.Minute,
			cfg.ExpiryWorkerBatchSize,
		)
		go utility.GoProtect("expiry-refresh-worker", func() { w.Start(ctx) })
	} else {
		log.Info("[EXPIRY_REFRESH] Worker disabled")
	}

	// Tắt server khi nhận SIGINT/SIGTERM
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig

		log.Info("Shutting down server...")
		cancel()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.WithError(err).Error("Server shutdown failed")
		}
	}()

	main_thread(app)

	// Chờ các handler sự kiện đang chạy rồi đóng kết nối
	events.Wait()
	if services.KafkaPublisher != nil {
		if err := services.KafkaPublisher.Close(); err != nil {
			log.WithError(err).Warn("Failed to close Kafka publisher")
		}
	}
	if global.Redis_Client != nil {
		_ = global.Redis_Client.Close()
	}
	_ = database.CloseInstance(global.MongoDB_Session)
	log.Info("Server stopped")
}
