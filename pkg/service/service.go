package service

import (
	"os"
	"os/signal"
	"syscall"
)

// Service is the lifecycle of a long-running server binary.
type Service interface {
	Init() error
	Start() error
	Stop() error
}

// Run drives a Service until SIGINT/SIGTERM, then stops it.
func Run(s Service) error {
	if err := s.Init(); err != nil {
		return err
	}

	if err := s.Start(); err != nil {
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	return s.Stop()
}
