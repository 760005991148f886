package handler

import (
	communitydomain "coinvest-go/internal/domain/community"
	commonhandler "coinvest-go/internal/transport/httpserver/handler/common"
	communitieshandler "coinvest-go/internal/transport/httpserver/handler/communities"
	"coinvest-go/pkg/logger"
)

type Handlers struct {
	Common      *commonhandler.Handlers
	Communities *communitieshandler.Handlers
}

func New(communities *communitydomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Common:      commonhandler.New(log),
		Communities: communitieshandler.New(communities, log),
	}
}
