package tlsconfig

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

// Options 連接後端時的 TLS 參數，全部為空時使用系統根證書
type Options struct {
	CAFile             string
	CertFile           string
	KeyFile            string
	ServerName         string
	InsecureSkipVerify bool
}

// ClientConfig 連接後端使用的基礎 TLS 配置
func ClientConfig() *tls.Config {
	return &tls.Config{
		// 強制 TLS 1.2+
		MinVersion: tls.VersionTLS12,
		MaxVersion: tls.VersionTLS13,

		// 只對 TLS 1.2 生效
		CipherSuites: []uint16{
			tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305,
			tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305,
			tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
		},

		CurvePreferences: []tls.CurveID{
			tls.X25519,
			tls.CurveP256,
		},
	}
}

// Build 按選項組裝客戶端配置
func Build(opts Options) (*tls.Config, error) {
	cfg := ClientConfig()
	cfg.ServerName = opts.ServerName
	cfg.InsecureSkipVerify = opts.InsecureSkipVerify

	if opts.CAFile != "" {
		pool, err := LoadCertPool(opts.CAFile)
		if err != nil {
			return nil, err
		}
		cfg.RootCAs = pool
	}

	if opts.CertFile != "" || opts.KeyFile != "" {
		if opts.CertFile == "" || opts.KeyFile == "" {
			return nil, errors.New("客戶端證書與私鑰必須同時指定")
		}
		cert, err := LoadClientCert(opts.CertFile, opts.KeyFile)
		if err != nil {
			return nil, err
		}
		cfg.Certificates = []tls.Certificate{cert}
	}
	return cfg, nil
}

// LoadClientCert 加載客戶端證書並驗證公私鑰匹配
func LoadClientCert(certPath, keyPath string) (tls.Certificate, error) {
	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("加載密鑰對失敗: %w", err)
	}

	if len(cert.Certificate) == 0 {
		return tls.Certificate{}, errors.New("證書鏈為空")
	}
	x509Cert, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("解析 x509 證書失敗: %w", err)
	}

	switch pub := x509Cert.PublicKey.(type) {
	case *rsa.PublicKey:
		priv, ok := cert.PrivateKey.(*rsa.PrivateKey)
		if !ok {
			return tls.Certificate{}, errors.New("私鑰類型不匹配 (預期 RSA)")
		}
		if pub.N.Cmp(priv.N) != 0 || pub.E != priv.E {
			return tls.Certificate{}, errors.New("RSA 公鑰與私鑰不匹配")
		}
	case *ecdsa.PublicKey:
		priv, ok := cert.PrivateKey.(*ecdsa.PrivateKey)
		if !ok {
			return tls.Certificate{}, errors.New("私鑰類型不匹配 (預期 ECDSA)")
		}
		if !pub.Equal(&priv.PublicKey) {
			return tls.Certificate{}, errors.New("ECDSA 公鑰與私鑰不匹配")
		}
	default:
		return tls.Certificate{}, fmt.Errorf("不支持的公鑰算法: %T", x509Cert.PublicKey)
	}

	cert.Leaf = x509Cert
	return cert, nil
}

// LoadCertPool 讀取 PEM 文件中的全部 CA 證書
func LoadCertPool(caPath string) (*x509.CertPool, error) {
	data, err := os.ReadFile(caPath)
	if err != nil {
		return nil, fmt.Errorf("讀取 CA 文件失敗: %w", err)
	}

	pool := x509.NewCertPool()
	count := 0
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("解析 CA 證書失敗: %w", err)
		}
		pool.AddCert(cert)
		count++
	}
	if count == 0 {
		return nil, errors.New("無效的 PEM 格式: 未找到證書")
	}
	return pool, nil
}
