package server

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"io"
	"math/big"
	"net"
	"testing"
	"time"

	"github.com/quipchat/quipd/internal/config"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find available port: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()
	return addr
}

// selfSignedTLS generates an in-memory certificate for loopback tests.
func selfSignedTLS(t *testing.T) *tls.Config {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "127.0.0.1"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1")},
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("creating certificate: %v", err)
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("marshaling key: %v", err)
	}
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		t.Fatalf("building key pair: %v", err)
	}
	return &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS12}
}

func TestNewServer(t *testing.T) {
	cfg := &config.Config{
		Hostname: "localhost",
		LogLevel: "info",
		Listeners: []config.ListenerConfig{
			{Address: ":0", Mode: config.ModePlain},
		},
	}

	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if srv == nil {
		t.Fatal("expected server, got nil")
	}
	if srv.Logger() == nil {
		t.Error("expected logger")
	}
	if srv.Config() != cfg {
		t.Error("expected config to be stored")
	}
	if srv.TLSConfig() != nil {
		t.Error("expected nil TLS config without cert/key")
	}
}

func TestNewServerWithInvalidTLS(t *testing.T) {
	cfg := &config.Config{
		Hostname: "localhost",
		LogLevel: "info",
		Listeners: []config.ListenerConfig{
			{Address: ":0", Mode: config.ModePlain},
		},
		TLS: config.TLSConfig{
			CertFile: "/nonexistent/cert.pem",
			KeyFile:  "/nonexistent/key.pem",
		},
	}

	if _, err := New(cfg); err == nil {
		t.Error("expected error for invalid TLS files")
	}
}

func TestServerRun(t *testing.T) {
	addr := freeAddr(t)

	cfg := &config.Config{
		Hostname: "localhost",
		LogLevel: "info",
		Listeners: []config.ListenerConfig{
			{Address: addr, Mode: config.ModePlain},
		},
	}

	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	handlerCalled := make(chan struct{})
	srv.SetHandler(func(ctx context.Context, conn *Connection) {
		select {
		case <-handlerCalled:
		default:
			close(handlerCalled)
		}
	})

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("failed to connect to server: %v", err)
	}
	_ = conn.Close()

	select {
	case <-handlerCalled:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not called")
	}

	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop in time")
	}
}

func TestServerRequiresHandler(t *testing.T) {
	cfg := &config.Config{
		Hostname: "localhost",
		LogLevel: "info",
		Listeners: []config.ListenerConfig{
			{Address: ":0", Mode: config.ModePlain},
		},
	}

	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := srv.Run(ctx); err == nil {
		t.Error("expected error without a handler")
	}
}

func TestServerMultipleListeners(t *testing.T) {
	addr1 := freeAddr(t)
	addr2 := freeAddr(t)

	cfg := &config.Config{
		Hostname: "localhost",
		LogLevel: "info",
		Listeners: []config.ListenerConfig{
			{Address: addr1, Mode: config.ModePlain},
			{Address: addr2, Mode: config.ModePlain},
		},
	}

	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	srv.SetHandler(func(ctx context.Context, conn *Connection) {})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)

	for _, addr := range []string{addr1, addr2} {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			t.Fatalf("failed to connect to %s: %v", addr, err)
		}
		_ = conn.Close()
	}
}

func TestServerBindFailure(t *testing.T) {
	// Occupy the port so the server cannot bind it.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve port: %v", err)
	}
	defer ln.Close()

	cfg := &config.Config{
		Hostname: "localhost",
		LogLevel: "info",
		Listeners: []config.ListenerConfig{
			{Address: ln.Addr().String(), Mode: config.ModePlain},
		},
	}

	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	srv.SetHandler(func(ctx context.Context, conn *Connection) {})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	select {
	case err := <-done:
		if err == nil || err == context.DeadlineExceeded {
			t.Errorf("expected bind error, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not surface the bind failure")
	}
}

func TestServerTLSModeWithoutTLS(t *testing.T) {
	cfg := &config.Config{
		Hostname: "localhost",
		LogLevel: "info",
		Listeners: []config.ListenerConfig{
			{Address: freeAddr(t), Mode: config.ModeTLS},
		},
	}

	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	srv.SetHandler(func(ctx context.Context, conn *Connection) {})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := srv.Run(ctx); err == nil || err == context.DeadlineExceeded {
		t.Errorf("expected TLS configuration error, got %v", err)
	}
}

func TestServerTLSListener(t *testing.T) {
	addr := freeAddr(t)

	cfg := &config.Config{
		Hostname: "localhost",
		LogLevel: "info",
		Listeners: []config.ListenerConfig{
			{Address: addr, Mode: config.ModeTLS},
		},
	}

	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	srv.SetTLSConfig(selfSignedTLS(t))

	received := make(chan string, 1)
	srv.SetHandler(func(ctx context.Context, conn *Connection) {
		if !conn.IsTLS() {
			t.Error("handler connection is not TLS")
		}
		buf := make([]byte, 16)
		n, err := conn.Read(buf)
		if err != nil {
			t.Errorf("read: %v", err)
			return
		}
		received <- string(buf[:n])
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)

	conn, err := tls.Dial("tcp", addr, &tls.Config{InsecureSkipVerify: true})
	if err != nil {
		t.Fatalf("TLS dial: %v", err)
	}
	defer conn.Close()

	if _, err := io.WriteString(conn, "A0 Nop\n"); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case got := <-received:
		if got != "A0 Nop\n" {
			t.Errorf("received %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no data received over TLS")
	}
}
