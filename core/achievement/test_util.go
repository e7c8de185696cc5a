package achievement

import (
	"github.com/trezcool/vitrine/core"
	"github.com/trezcool/vitrine/core/user"
)

// NewServiceMock returns a Service that sends decision mails synchronously.
func NewServiceMock(repo Repository, usrSvc user.Service, mailSvc core.EmailService, conf *core.Config) Service {
	return &service{
		repo:     repo,
		usrSvc:   usrSvc,
		mailSvc:  mailSvc,
		conf:     conf,
		mailSync: true,
		seenReqs: make(map[string]transitionResult),
	}
}
