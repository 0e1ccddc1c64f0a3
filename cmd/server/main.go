package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	catalogmodels "academy/internal/api/catalog/models"
	basesvc "academy/internal/api/base/service"
	"academy/internal/assetstore"
	"academy/internal/global"
	"academy/internal/logger"
	"academy/internal/worker"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// initLogger khởi tạo hệ thống logging trước mọi thứ khác
func initLogger() {
	cfg := logger.DefaultConfig()
	if err := logger.Init(cfg); err != nil {
		logrus.Fatalf("Không khởi tạo được logger: %v", err)
	}
}

// resolvePath tìm file theo đường dẫn tương đối, đi ngược lên thư mục cha
// cho đến khi tìm thấy (phục vụ chạy binary từ cmd/server lẫn từ root).
func resolvePath(relPath string) string {
	if filepath.IsAbs(relPath) {
		return relPath
	}

	currentDir, err := os.Getwd()
	if err != nil {
		return relPath
	}

	for {
		candidate := filepath.Join(currentDir, relPath)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return relPath
		}
		currentDir = parentDir
	}
}

// main_thread khởi động HTTP/HTTPS server, block cho đến khi server dừng
func main_thread(done chan bool) {
	app := InitFiberApp()
	log := logger.GetAppLogger()

	address := ":" + global.MongoDB_ServerConfig.Address

	if global.MongoDB_ServerConfig.EnableTLS {
		certFile := resolvePath(global.MongoDB_ServerConfig.TLSCertFile)
		keyFile := resolvePath(global.MongoDB_ServerConfig.TLSKeyFile)

		if _, err := os.Stat(certFile); err != nil {
			log.Fatalf("Không tìm thấy TLS cert file: %s", certFile)
		}
		if _, err := os.Stat(keyFile); err != nil {
			log.Fatalf("Không tìm thấy TLS key file: %s", keyFile)
		}

		log.Infof("🚀 Academy API đang chạy HTTPS tại %s", address)
		if err := app.Listen(address, fiber.ListenConfig{
			CertFile:    certFile,
			CertKeyFile: keyFile,
		}); err != nil {
			log.Fatalf("Server dừng với lỗi: %v", err)
		}
	} else {
		log.Infof("🚀 Academy API đang chạy HTTP tại %s", address)
		if err := app.Listen(address); err != nil {
			log.Fatalf("Server dừng với lỗi: %v", err)
		}
	}

	done <- true
}

// startAssetReconcileWorker chạy worker dọn dẹp asset mồ côi trong background.
// Worker retry xóa các media mà create/update/delete course không dọn được.
func startAssetReconcileWorker() {
	defer func() {
		if r := recover(); r != nil {
			logger.GetAppLogger().Errorf("🧹 [ASSET_RECONCILE] Worker panic: %v", r)
		}
	}()

	cfg := global.MongoDB_ServerConfig
	orphans := basesvc.NewBaseServiceMongo[catalogmodels.OrphanAsset](mustCollection(global.MongoDB_ColNames.OrphanAssets))
	assetClient := assetstore.NewCloudinaryClient(cfg)

	reconcileWorker := worker.NewAssetReconcileWorker(
		orphans,
		assetClient,
		time.Duration(cfg.AssetReconcileInterval)*time.Second,
		cfg.AssetReconcileMaxTries,
	)
	reconcileWorker.Start(context.Background())
}

func main() {
	initLogger()

	InitGlobal()
	InitRegistry()
	InitDefaultData()

	// Worker dọn dẹp asset mồ côi chạy song song với HTTP server
	go startAssetReconcileWorker()

	done := make(chan bool)
	go main_thread(done)
	<-done
}
