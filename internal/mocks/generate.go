// Package mocks holds mockery-generated testify mocks for domain repository
// ports. Regenerate with `go generate ./internal/mocks`.
package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/league --output domain/league --outpkg leaguemock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/race --output domain/race --outpkg racemock --filename repository_mock.go
