package handlers

import (
	"github.com/sirupsen/logrus"

	"giftfinder/internal/apiclient"
	"giftfinder/internal/events"
	"giftfinder/internal/i18n"
	"giftfinder/internal/repos"
	"giftfinder/internal/services"
)

type Deps struct {
	Auth *services.AuthService

	HomeHandler    *HomeHandler
	FinderHandler  *FinderHandler
	CatalogHandler *CatalogHandler
	LocaleHandler  *LocaleHandler
	AuthHandler    *AuthHandler
	AdminHandler   *AdminHandler
}

func NewDeps(client *apiclient.Client, sessions *repos.SessionRepo, provider *i18n.Provider, pub events.Publisher, logger *logrus.Logger) *Deps {
	authSvc := services.NewAuthService(client, sessions)
	catalogSvc := services.NewCatalogService(client)
	finderSvc := services.NewFinderService(client, pub, logger)
	adminSvc := services.NewAdminService(authSvc)

	return &Deps{
		Auth:           authSvc,
		HomeHandler:    &HomeHandler{},
		FinderHandler:  &FinderHandler{Finder: finderSvc, Catalog: catalogSvc},
		CatalogHandler: &CatalogHandler{Catalog: catalogSvc},
		LocaleHandler:  &LocaleHandler{Provider: provider, Sessions: sessions},
		AuthHandler:    &AuthHandler{Auth: authSvc},
		AdminHandler:   &AdminHandler{Admin: adminSvc},
	}
}
