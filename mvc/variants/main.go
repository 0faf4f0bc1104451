package variants

import (
	"fmt"
	"net/http"
	"time"

	"vsal/api/contexts"
	"vsal/api/models"
	"vsal/api/utils"

	"github.com/labstack/echo"
)

func VariantsFindGet(c echo.Context) error {
	fmt.Printf("[%s] - VariantsFindGet hit!\n", time.Now())
	return executeFind(c)
}

func VariantsFindPost(c echo.Context) error {
	fmt.Printf("[%s] - VariantsFindPost hit!\n", time.Now())
	return executeFind(c)
}

// executeFind binds the raw /find parameter surface (query string on
// GET, JSON body on POST), normalizes it into a canonical query and
// hands it to the engine. Query-level failures come back as a
// structured error in the response body, not as an HTTP error.
func executeFind(c echo.Context) error {
	gc := c.(*contexts.VsalContext)

	var params models.FindParams
	if err := c.Bind(&params); err != nil {
		badRequest := models.NewMalformedQuery(fmt.Sprintf("failed to bind parameters : %s", err))
		return c.JSON(http.StatusBadRequest, &models.CoreResponse{Error: badRequest})
	}
	params.Authorization = c.Request().Header.Get("Authorization")

	coreQuery := utils.BuildCoreQuery(&params, gc.Config.Api.MaxVariants)

	res := gc.CoreService.Query(c.Request().Context(), &coreQuery)
	return c.JSON(http.StatusOK, res)
}
