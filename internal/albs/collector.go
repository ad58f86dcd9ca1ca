package albs

import (
	"context"
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/AlmaLinux/alma-sbom/internal/models"
)

const artifactTypeRPM = "rpm"

// Collector builds a Build from a build system manifest
type Collector struct {
	client *Client
}

// NewCollector creates a collector using client
func NewCollector(client *Client) *Collector {
	return &Collector{client: client}
}

// CollectBuild fetches the manifest of buildID. It returns the Build without
// packages and the content hashes of its RPM artifacts in manifest order.
func (c *Collector) CollectBuild(ctx context.Context, buildID string) (*models.Build, []string, error) {
	info, err := c.client.GetBuild(ctx, buildID)
	if err != nil {
		return nil, nil, models.NewError(models.ErrTransport, buildID, err)
	}

	id := strconv.Itoa(info.ID)
	if id != buildID {
		return nil, nil, models.NewError(models.ErrMalformedInput, buildID,
			fmt.Errorf("%w: build system returned build %s", models.ErrBuildIDMismatch, id))
	}

	build := &models.Build{
		ID:     id,
		Author: fmt.Sprintf("%s <%s>", info.Owner.Username, info.Owner.Email),
		Properties: &models.BuildProperties{
			BuildID:   id,
			BuildURL:  fmt.Sprintf("%s/build/%s", c.client.BaseURL(), id),
			Timestamp: info.CreatedAt,
		},
	}

	var hashes []string
	for _, task := range info.Tasks {
		for _, artifact := range task.Artifacts {
			if artifact.Type != artifactTypeRPM {
				continue
			}
			hashes = append(hashes, artifact.CasHash)
		}
	}
	log.Debugf("Build %s has %d RPM artifacts", id, len(hashes))

	return build, hashes, nil
}
