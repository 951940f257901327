package main

import "github.com/go-git/go-git/v5/config"

func remoteConfig(name, url string) *config.RemoteConfig {
	return &config.RemoteConfig{Name: name, URLs: []string{url}}
}
