package contexts

import (
	"vsal/api/models"
	"vsal/api/services"

	"github.com/labstack/echo"
)

type (
	// "Helper" Context to pass into routes that need
	//  the query engine and other variables
	VsalContext struct {
		echo.Context
		Config      *models.Config
		CoreService *services.CoreService
	}
)
